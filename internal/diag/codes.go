package diag

import (
	"fmt"
)

// Code is a stable numeric diagnostic code.
type Code uint16

const (
	UnknownCode Code = 0

	// Matchfile syntax (2xxx).
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynUnterminatedStr  Code = 2002
	SynBadNumber        Code = 2003
	SynUnknownTag       Code = 2004
	SynTagArity         Code = 2005
	SynUnknownRecord    Code = 2006
	SynUnknownField     Code = 2007
	SynDuplicateField   Code = 2008
	SynBadAliasName     Code = 2009
	SynTrailingInput    Code = 2010
	SynEmptyMatch       Code = 2011
	SynArgCount         Code = 2012
	SynDuplicateBinding Code = 2013
	SynOrBindingSkew    Code = 2014
	SynUnboundName      Code = 2015

	// Matchfile document structure (3xxx).
	FileBadSchema    Code = 3000
	FileBadMode      Code = 3001
	FileDuplicateTag Code = 3002
	FileNoClauses    Code = 3003
	FileBadTagset    Code = 3004

	// Match compiler internals (7xxx). These indicate defects in the
	// preprocessor or specializer, never user errors.
	MatchInternal      Code = 7000
	MatchArityMismatch Code = 7001
	MatchEmptyColumn   Code = 7002
	MatchBadHead       Code = 7003
	MatchLabelOverflow Code = 7004
)

func (c Code) String() string {
	return fmt.Sprintf("TERN%04d", uint16(c))
}
