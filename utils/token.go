package utils

import (
	"sync"
	"time"
)

var (
	revokedTokens = make(map[string]time.Time)
	revokedMutex  sync.RWMutex
)

// RevokeToken rejects the token with the given id until it would have expired anyway.
func RevokeToken(tokenID string, until time.Time) {
	if tokenID == "" {
		return
	}
	revokedMutex.Lock()
	defer revokedMutex.Unlock()
	revokedTokens[tokenID] = until
}

func IsTokenRevoked(tokenID string) bool {
	revokedMutex.RLock()
	expiry, exists := revokedTokens[tokenID]
	revokedMutex.RUnlock()

	if !exists {
		return false
	}
	if time.Now().Before(expiry) {
		return true
	}

	revokedMutex.Lock()
	delete(revokedTokens, tokenID)
	revokedMutex.Unlock()
	return false
}

// StartRevocationCleanup drops expired entries every interval until stop is closed.
func StartRevocationCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				pruneRevokedTokens(time.Now())
			case <-stop:
				return
			}
		}
	}()
}

func pruneRevokedTokens(now time.Time) int {
	revokedMutex.Lock()
	defer revokedMutex.Unlock()

	pruned := 0
	for id, expiry := range revokedTokens {
		if now.After(expiry) {
			delete(revokedTokens, id)
			pruned++
		}
	}
	return pruned
}
