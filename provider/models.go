package provider

// Provider is a seller account linked to an application user.
type Provider struct {
	ID              int64
	UserID          int64
	Name            string
	Email           string
	Phone           string
	ProfileImageURL *string
}

// CreateParams contains write parameters for creating providers.
type CreateParams struct {
	UserID int64
	Name   string
	Email  string
	Phone  string
}

// UpdateParams carries the mutable fields for an update. The linked user
// cannot be changed after creation.
type UpdateParams struct {
	Name            string
	Email           string
	Phone           string
	ProfileImageURL *string
}
