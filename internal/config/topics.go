package config

const (
	// TopicRepoStatus is the NSQ topic for repository processing status
	// events (processing, completed, failed).
	TopicRepoStatus = "repo.status"
)
