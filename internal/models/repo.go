package models

// Repo is one entry of the GitHub "list repositories for a user" response.
// Only the fields the portfolio consumes are decoded.
type Repo struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Homepage    *string  `json:"homepage"`
	Language    *string  `json:"language"`
	Topics      []string `json:"topics"`
	Stars       int      `json:"stargazers_count"`
	Fork        bool     `json:"fork"`
	Archived    bool     `json:"archived"`
	PushedAt    string   `json:"pushed_at"`
	HTMLURL     string   `json:"html_url"`
}

func (r Repo) DescriptionText() string { return deref(r.Description) }
func (r Repo) HomepageURL() string     { return deref(r.Homepage) }
func (r Repo) LanguageName() string    { return deref(r.Language) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
