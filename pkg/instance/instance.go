package instance

import "github.com/angelmondragon/quizfinderz-backend/pkg/env"

const fallbackID = "local"

// ID identifies this process in logs: an explicit override, the platform dyno name, then the hostname.
func ID() string {
	return env.First(fallbackID, "QUIZFINDERZ_INSTANCE_ID", "DYNO", "HOSTNAME")
}
