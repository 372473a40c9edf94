package core

// error_messages.go maps internal errors to user-friendly messages with
// support codes. Users can quote the code when reporting a problem.
//
// Code groups:
//
//	LST001 - listing fetch failed while paginating
//	LST002 - year has no documents
//	SEL001 - submitted option not in the derived option set
//	SEL002 - operation ran before its upstream selection
//	SES001 - unknown or expired session
//	DOC001 - resolved selection matches no listing row
//	DOC002 - document endpoint returned a non-200 status
//	SYS001 - anything unrecognized

import "errors"

// UserMessage is a user-facing error with a support code and a suggested
// next step.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// MapError converts an internal error to a UserMessage.
func MapError(err error) UserMessage {
	var fetchFailed *FetchFailedError
	var listingErr *ListingFetchError

	switch {
	case errors.As(err, &listingErr):
		return UserMessage{
			Code:    "LST001",
			Message: "Could not retrieve the document listing from NHTSA.",
			Action:  "Reselect the year to try again.",
		}
	case errors.Is(err, ErrEmptyListing):
		return UserMessage{
			Code:    "LST002",
			Message: "No documents are available for the selected year.",
			Action:  "Choose a different year.",
		}
	case errors.Is(err, ErrInvalidSelection):
		return UserMessage{
			Code:    "SEL001",
			Message: "That option is no longer available.",
			Action:  "Refresh the options and select again.",
		}
	case errors.Is(err, ErrNoYear), errors.Is(err, ErrNoMake), errors.Is(err, ErrNoVersion):
		return UserMessage{
			Code:    "SEL002",
			Message: "A year, make and version must be selected first.",
			Action:  "Complete the selections from the top down.",
		}
	case errors.Is(err, ErrNoSession):
		return UserMessage{
			Code:    "SES001",
			Message: "Your session has expired.",
			Action:  "Reload the page to start a new session.",
		}
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Code:    "DOC001",
			Message: "The selected document could not be matched to the current listing.",
			Action:  "Reselect the version and try again.",
		}
	case errors.As(err, &fetchFailed):
		return UserMessage{
			Code:    "DOC002",
			Message: "The document could not be fetched for inline preview.",
			Action:  "Use the direct link to open the PDF in a new tab.",
		}
	default:
		return UserMessage{
			Code:    "SYS001",
			Message: "Something went wrong.",
			Action:  "Please try again.",
		}
	}
}
