package handler

import (
	"emberchat/internal/app/chat"
	"emberchat/internal/configs"
)

// AppDeps bundles the dependencies shared by all HTTP handlers.
type AppDeps struct {
	Room   *chat.Room
	Config *configs.AppConfig
}
