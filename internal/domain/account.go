package domain

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Nickname string `json:"nickname"`
	Gender   Gender `json:"gender"`
	Avatar   string `json:"avatar,omitempty"`
}

// UserPatch carries the fields of a partial profile update; nil means unchanged.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	Gender   *Gender `json:"gender,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Nickname != nil {
		u.Nickname = *p.Nickname
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	return u
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Nickname string `json:"nickname"`
	Gender   Gender `json:"gender"`
}

type AdminRole string

const (
	AdminRoleSuper  AdminRole = "superadmin"
	AdminRoleAdmin  AdminRole = "admin"
	AdminRoleEditor AdminRole = "editor"
)

type Admin struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar,omitempty"`
	Role     AdminRole `json:"role"`
}

// Actor is whoever a store acts on behalf of: the logged-in user or the
// guest placeholder.
type Actor struct {
	ID            string
	DisplayName   string
	Avatar        string
	Authenticated bool
}

const (
	GuestID          = "1"
	GuestDisplayName = "Current user"
)

func Guest() Actor {
	return Actor{ID: GuestID, DisplayName: GuestDisplayName}
}
