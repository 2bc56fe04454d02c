// Package chain models a bounded chain of classified, weighted items and the
// fixed affinity weights between item classes.
package chain

import "fmt"

// Class is one of the five item classes. The zero value is ClassP.
type Class uint8

const (
	ClassP Class = iota
	ClassN
	ClassA
	ClassB
	ClassTerminal

	// NumClasses is the size of the class alphabet.
	NumClasses = 5
)

var classLetters = [NumClasses]byte{'P', 'N', 'A', 'B', 'T'}

// ParseClass maps an interior class letter to its class.
// Only P, N, A and B are accepted; Terminal is reserved for sentinels.
func ParseClass(letter byte) (Class, error) {
	switch letter {
	case 'P':
		return ClassP, nil
	case 'N':
		return ClassN, nil
	case 'A':
		return ClassA, nil
	case 'B':
		return ClassB, nil
	default:
		return 0, fmt.Errorf("%w: unknown class letter %q", ErrInvalidInput, letter)
	}
}

// Letter returns the single-letter symbol for the class.
func (c Class) Letter() byte {
	if int(c) >= NumClasses {
		return '?'
	}
	return classLetters[c]
}

func (c Class) String() string {
	return string(c.Letter())
}
