package availability

// ResolveRestriction decides the visiting condition for a prisoner/visitor
// pairing. A closed-type restriction on either side forces CLOSED; otherwise
// the caller's requested restriction wins, defaulting to OPEN.
func ResolveRestriction(prisonerClosed, anyVisitorClosed bool, requested *Restriction) Restriction {
	if prisonerClosed || anyVisitorClosed {
		return RestrictionClosed
	}
	if requested != nil {
		return *requested
	}
	return RestrictionOpen
}
