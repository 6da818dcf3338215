package middleware

import "context"

const userIDKey = contextKey("userID")

// GetUserIDFromCtx retrieves the authenticated user ID from the context. It
// returns the user ID and a boolean indicating whether it was found.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
