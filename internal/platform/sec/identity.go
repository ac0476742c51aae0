// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "time"

// # Resolved Identity

// AuthContext is the caller identity produced by a successful token
// verification. It lives for the duration of one protected request.
type AuthContext struct {
	UserID      string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}
