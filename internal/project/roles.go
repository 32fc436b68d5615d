package project

// RoleSet names one of the three independent membership sets.
type RoleSet string

const (
	RoleDesigners RoleSet = "designers"
	RoleArtisans  RoleSet = "artisans"
	RoleEditors   RoleSet = "editors"
)

// NormalizeRoleSet maps unknown set names to the empty RoleSet.
func NormalizeRoleSet(value string) RoleSet {
	switch RoleSet(value) {
	case RoleDesigners, RoleArtisans, RoleEditors:
		return RoleSet(value)
	default:
		return ""
	}
}

// PrototypeField names one writable field of the shared menu prototype.
type PrototypeField string

const (
	FieldGeneralStyle        PrototypeField = "generalStyle"
	FieldDigitalLink         PrototypeField = "digitalLink"
	FieldPhysicalPhoto       PrototypeField = "physicalPhoto"
	FieldPhysicalDescription PrototypeField = "physicalDescription"
)

// prototypeGates maps each prototype field to the role set whose members may
// write it. The merge engine and the mutation boundary share this table.
var prototypeGates = map[PrototypeField]RoleSet{
	FieldDigitalLink:         RoleDesigners,
	FieldGeneralStyle:        RoleArtisans,
	FieldPhysicalPhoto:       RoleArtisans,
	FieldPhysicalDescription: RoleArtisans,
}

// NormalizePrototypeField maps unknown field names to the empty field.
func NormalizePrototypeField(value string) PrototypeField {
	if _, ok := prototypeGates[PrototypeField(value)]; ok {
		return PrototypeField(value)
	}
	return ""
}

// InRoleSet reports whether the member belongs to the named set.
func (p *Project) InRoleSet(set RoleSet, memberID string) bool {
	switch set {
	case RoleDesigners:
		return containsID(p.Roles.DesignerIDs, memberID)
	case RoleArtisans:
		return containsID(p.Roles.ArtisanIDs, memberID)
	case RoleEditors:
		return containsID(p.Roles.EditorIDs, memberID)
	default:
		return false
	}
}

// CanEditPrototype reports whether the member may write the given prototype
// field. The coordinator path bypasses gating.
func (p *Project) CanEditPrototype(memberID string, field PrototypeField) bool {
	if member, ok := p.MemberByID(memberID); ok && member.IsCoordinator {
		return true
	}
	gate, ok := prototypeGates[field]
	if !ok {
		return false
	}
	return p.InRoleSet(gate, memberID)
}
