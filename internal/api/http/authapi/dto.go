package authapi

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type signupInput struct {
	Body struct {
		Name     string `json:"name" minLength:"1" maxLength:"200"`
		Email    string `json:"email" format:"email"`
		Password string `json:"password" minLength:"6" maxLength:"200"`
	}
}

type signupOutput struct {
	SetCookie string `header:"Set-Cookie"`
	Body      SessionResponse
}

type loginInput struct {
	Body struct {
		Email    string `json:"email" format:"email"`
		Password string `json:"password" minLength:"1"`
	}
}

type loginOutput struct {
	SetCookie string `header:"Set-Cookie"`
	Body      SessionResponse
}

type SessionResponse struct {
	OK   bool         `json:"ok"`
	User UserResponse `json:"user"`
}

type logoutInput struct {
	Cookie        string `header:"Cookie"`
	Authorization string `header:"Authorization"`
}

type logoutOutput struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		OK bool `json:"ok"`
	}
}

type meOutput struct {
	Body SessionResponse
}
