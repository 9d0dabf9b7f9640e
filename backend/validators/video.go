package validators

import "strings"

// VideoLinkMessage is returned for links outside the allowed hosts.
const VideoLinkMessage = "Ссылка должна начинаться с youtube.com"

var allowedPrefixes = []string{"youtube.com", "https://youtube.com", "http://youtube.com"}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateVideoLink checks the literal host prefix of a lesson video link.
func ValidateVideoLink(value string) error {
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(value, prefix) {
			return nil
		}
	}
	return &ValidationError{Message: VideoLinkMessage}
}
