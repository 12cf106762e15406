package handler

import (
	"friendapp/internal/app/friend"
	"friendapp/internal/app/notify"
	"friendapp/internal/configs"
)

// AppDeps bundles the shared dependencies injected into every handler.
type AppDeps struct {
	Config    *configs.AppConfig
	Directory friend.Directory
	Friends   *friend.Service
	Hub       *notify.Hub
}
