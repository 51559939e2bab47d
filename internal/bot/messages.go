package bot

import "github.com/m3rciful/shopbot/internal/shoperr"

// userMessage maps a coded failure onto the reply the user sees. The coded
// error itself still propagates to the router so the summary log carries
// err_code.
func userMessage(err error) string {
	switch shoperr.CodeOf(err) {
	case shoperr.InvalidKey:
		return "Keys may only contain lowercase letters and digits. Try again."
	case shoperr.DuplicateKey:
		return "That key is already taken. Pick another one."
	case shoperr.NotFound:
		return "That entry no longer exists."
	case shoperr.InvalidPrice:
		return "The price must be a positive number, e.g. 0.0005. Try again."
	case shoperr.AssetMissing:
		return "No file found at that path. Check the path and try again."
	case shoperr.Unauthorized:
		return "You are not allowed to do that."
	case shoperr.GatewayUnavailable:
		return "The payment service is unavailable right now. Please try again in a moment."
	case shoperr.NoPendingIntent:
		return "There is no pending payment. Pick an item and press Buy first."
	case shoperr.MalformedRequest:
		return "I could not make sense of that. Try again."
	}
	return "Something went wrong. Please try again."
}
