package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key for a logged-in portal session (by token id).
func (r *CacheKeyStruct) SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// DraftKey returns the cache key for an authoring draft.
func (r *CacheKeyStruct) DraftKey(draftID string) string {
	return fmt.Sprintf("draft:%s", draftID)
}

// DraftSubmitLockKey guards the single in-flight submission of a draft.
func (r *CacheKeyStruct) DraftSubmitLockKey(draftID string) string {
	return fmt.Sprintf("draft:%s:submit_lock", draftID)
}

// AttemptKey returns the cache key for a quiz attempt.
func (r *CacheKeyStruct) AttemptKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s", attemptID)
}

// AttemptSubmitLockKey guards the single in-flight submission of an attempt.
func (r *CacheKeyStruct) AttemptSubmitLockKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:submit_lock", attemptID)
}

// ResultsChannel returns the Redis PubSub channel for new results of an assessment.
func (r *CacheKeyStruct) ResultsChannel(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:results", assessmentID)
}

var CacheKey = NewCacheKeyStruct()
