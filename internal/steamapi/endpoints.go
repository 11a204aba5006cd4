package steamapi

import "fmt"

const (
	apiBase       = "https://api.steampowered.com"
	communityBase = "https://steamcommunity.com"

	confirmationListPath   = "/mobileconf/getlist"
	confirmationDetailPath = "/mobileconf/details/"
	confirmationOpPath     = "/mobileconf/ajaxop"

	// defaultUserAgent mirrors what the official mobile app sends; some
	// endpoints reject requests with other agents.
	defaultUserAgent  = "okhttp/4.9.2"
	defaultAppVersion = "777777 3.10.3"
	clientPlatform    = "android"
	defaultLanguage   = "english"

	// eresultHeader carries the platform result code; confirmation and
	// service responses never put it in the body.
	eresultHeader = "x-eresult"
)

// serviceEndpoint builds a Web API URL such as
// https://api.steampowered.com/ITwoFactorService/QueryTime/v1/.
func serviceEndpoint(base, apiInterface, method string, version int) string {
	return fmt.Sprintf("%s/I%sService/%s/v%d/", base, apiInterface, method, version)
}
