// Package validate holds input checks and call-rate helpers shared by the
// analyzer session and the CLI.
package validate

import "regexp"

var (
	githubHTTPRegex = regexp.MustCompile(`^https?://github\.com/[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+(/.+)*(\.git)?$`)
	githubSSHRegex  = regexp.MustCompile(`^git@github\.com:[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+(\.git)?$`)
)

// IsValidGithubURL accepts http(s)://github.com/<owner>/<repo>[/path][.git]
// and git@github.com:<owner>/<repo>[.git].
func IsValidGithubURL(url string) bool {
	if url == "" {
		return false
	}

	return githubHTTPRegex.MatchString(url) || githubSSHRegex.MatchString(url)
}
