package project

// Bind sets the active identity to a roster member. Binding to an id that is
// not in the roster is a silent no-op, and the document stays locked.
func (p *Project) Bind(memberID string) bool {
	if !p.HasMember(memberID) {
		return false
	}
	p.ActiveMemberID = memberID
	return true
}

// Unbind clears the active identity, returning the document to the locked
// state.
func (p *Project) Unbind() {
	p.ActiveMemberID = ""
}

// Identified reports whether a session identity is currently bound. Callers
// must reject owner-requiring mutations while the document is locked; the
// resolver itself does not intercept them.
func (p *Project) Identified() bool {
	return p.ActiveMemberID != "" && p.HasMember(p.ActiveMemberID)
}

// ActiveMember returns the bound roster entry, if any.
func (p *Project) ActiveMember() (Member, bool) {
	if p.ActiveMemberID == "" {
		return Member{}, false
	}
	return p.MemberByID(p.ActiveMemberID)
}
