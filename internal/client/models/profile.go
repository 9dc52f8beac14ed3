package models

import "time"

// Profile is the singleton user record. There is exactly one row, created
// during setup and updated via partial merge; it disappears only with a full
// data wipe.
type Profile struct {
	Name      string
	BirthDate time.Time
	PINSalt   []byte
	PINHash   []byte
	Locale    string
	Theme     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfilePatch is a partial profile update. PIN material is changed through
// the profile service, not through the patch.
type ProfilePatch struct {
	Name      *string
	BirthDate *time.Time
	Locale    *string
	Theme     *string
}

// Apply merges the patch into p.
func (pp *ProfilePatch) Apply(p *Profile) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.BirthDate != nil {
		p.BirthDate = *pp.BirthDate
	}
	if pp.Locale != nil {
		p.Locale = *pp.Locale
	}
	if pp.Theme != nil {
		p.Theme = *pp.Theme
	}
}
