package handlers

// Handlers groups the per-domain handlers the router mounts.
type Handlers struct {
	Users    *UserHandler
	Posts    *PostHandler
	Comments *CommentHandler
	Pages    *PageHandler
	Health   *HealthHandler
}
