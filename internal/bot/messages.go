package bot

const (
	msgFailure        = "Sorry, something went wrong"
	msgRenderFailed   = "Sorry, I could not create the audio, this is probably a bug"
	msgFeedUnreadable = "Sorry, I could not read the feed"
	msgNotFound       = "Sorry, I found nothing to send with your settings"
	msgEmpty          = "Sorry, nothing is left to send"
)
