package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptSeedKey returns the cache key for a student's persisted layout seed
func (r *CacheKeyStruct) AttemptSeedKey(assignmentID string, studentID, attempt int) string {
	return fmt.Sprintf("student:%d:assignment:%s:attempt:%d:seed", studentID, assignmentID, attempt)
}

// AssignmentConfigKey returns the cache key for an assignment's anti-cheat config
func (r *CacheKeyStruct) AssignmentConfigKey(assignmentID string) string {
	return fmt.Sprintf("assignment:%s:config", assignmentID)
}

// AssignmentBankKey returns the cache key for an assignment's question bank payload
func (r *CacheKeyStruct) AssignmentBankKey(assignmentID string) string {
	return fmt.Sprintf("assignment:%s:bank", assignmentID)
}

// ProctorChannel returns the Redis PubSub channel name for an assignment's live proctor feed
func (r *CacheKeyStruct) ProctorChannel(assignmentID string) string {
	return fmt.Sprintf("assignment:%s:proctor", assignmentID)
}

var CacheKey = NewCacheKeyStruct()
