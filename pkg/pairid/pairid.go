// Package pairid encodes composite natural keys of the form "parentId:childId".
//
// Several object kinds are identified only by a numeric owning-object id and a
// non-numeric name. The pair is canonicalized into one opaque string id that
// the rest of the engine compares, maps and displays like any other id.
package pairid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/transit/pkg/domain"
)

// Separator joins the parent and child halves.
const Separator = ":"

// PairID is a parsed composite key.
type PairID struct {
	ParentID string
	ChildID  string
}

// Parse splits text on the first separator.
// The parent half must be base-10 integer text and neither half may be empty.
func Parse(text string) (PairID, error) {
	parent, child, ok := strings.Cut(text, Separator)
	if !ok {
		return PairID{}, &domain.FormatError{Value: text, Reason: "missing separator"}
	}
	if parent == "" || child == "" {
		return PairID{}, &domain.FormatError{Value: text, Reason: "empty half"}
	}
	if !isNumeric(parent) {
		return PairID{}, &domain.FormatError{Value: text, Reason: "parent id is not numeric"}
	}
	return PairID{ParentID: parent, ChildID: child}, nil
}

// Format builds the canonical text of a pair id.
func Format(parentID, childID string) (string, error) {
	if parentID == "" || childID == "" {
		return "", fmt.Errorf("%w: pair id halves must not be empty (parent %q, child %q)", domain.ErrIllegalArgument, parentID, childID)
	}
	if !isNumeric(parentID) {
		return "", fmt.Errorf("%w: parent id %q is not numeric", domain.ErrIllegalArgument, parentID)
	}
	return parentID + Separator + childID, nil
}

// MustFormat is like Format but panics on invalid input. Intended for fixtures.
func MustFormat(parentID, childID string) string {
	s, err := Format(parentID, childID)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the canonical text of p.
func (p PairID) String() string {
	return p.ParentID + Separator + p.ChildID
}

// WithParent returns a copy of p owned by parentID.
func (p PairID) WithParent(parentID string) (PairID, error) {
	if _, err := Format(parentID, p.ChildID); err != nil {
		return PairID{}, err
	}
	return PairID{ParentID: parentID, ChildID: p.ChildID}, nil
}

// IsPair reports whether text parses as a pair id.
func IsPair(text string) bool {
	_, err := Parse(text)
	return err == nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
