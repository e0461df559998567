package valueobjects

import "strings"

// PathSeparator joins ids in the textual form of a BankPath.
const PathSeparator = ","

// BankPath is an ordered list of ancestor ids, starting just below the forest root.
type BankPath []BankID

// ParseBankPath parses the comma separated form produced by BankPath.String.
// Empty segments are rejected.
func ParseBankPath(s string) (BankPath, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BankPath{}, nil
	}
	parts := strings.Split(s, PathSeparator)
	path := make(BankPath, 0, len(parts))
	for _, part := range parts {
		id, err := ParseBankID(part)
		if err != nil {
			return nil, err
		}
		path = append(path, id)
	}
	return path, nil
}

// String returns the comma separated form of the path
func (p BankPath) String() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = id.String()
	}
	return strings.Join(parts, PathSeparator)
}

// Root returns the first id of the path, or the zero id for an empty path
func (p BankPath) Root() BankID {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Last returns the deepest id of the path, or the zero id for an empty path
func (p BankPath) Last() BankID {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Append returns a new path with id added; p is left untouched.
func (p BankPath) Append(id BankID) BankPath {
	out := make(BankPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, id)
}

// Equals compares two paths element by element
func (p BankPath) Equals(other BankPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
