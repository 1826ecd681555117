/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file contains the administrative endpoints. Each requires the shared
admin secret in the request body; a mismatch yields a generic 403 with no
further detail.
*/
package handler

import (
	"net/http"

	"emberchat/internal/pkg/errs"
	"emberchat/internal/pkg/req"
	"emberchat/internal/pkg/resp"
)

// adminRequest is the base body for administrative endpoints.
type adminRequest struct {
	Secret string `json:"secret"`
}

// unbanIPRequest carries the secret plus the IP to remove from the ban set.
type unbanIPRequest struct {
	Secret string `json:"secret"`
	IP     string `json:"ip"`
}

// checkSecret validates the shared admin secret. Returns false after
// responding 403 when the secret does not match.
func checkSecret(w http.ResponseWriter, r *http.Request, deps *AppDeps, secret string) bool {
	if secret == "" || secret != deps.Config.AdminSecret {
		resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
		return false
	}
	return true
}

// HandleClearBans empties all ban sets.
func HandleClearBans(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adminRequest
		if cerr := req.BindJSON(r, &body); cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		if !checkSecret(w, r, deps, body.Secret) {
			return
		}

		deps.Room.ClearBans()
		resp.RespondSuccess(w, r, nil)
	}
}

// HandleClearUsers removes all registered identities except the admin.
func HandleClearUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adminRequest
		if cerr := req.BindJSON(r, &body); cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		if !checkSecret(w, r, deps, body.Secret) {
			return
		}

		removed := deps.Room.ClearUsers()
		resp.RespondSuccess(w, r, map[string]int{"removed": removed})
	}
}

// HandleUnbanIP removes one IP from the banned-IP set. This is the only
// ban reversal the moderation design supports.
func HandleUnbanIP(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body unbanIPRequest
		if cerr := req.BindJSON(r, &body); cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		if !checkSecret(w, r, deps, body.Secret) {
			return
		}

		if body.IP == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		removed := deps.Room.UnbanIP(body.IP)
		resp.RespondSuccess(w, r, map[string]bool{"removed": removed})
	}
}

// HandleListBannedIPs returns the current banned-IP set.
func HandleListBannedIPs(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adminRequest
		if cerr := req.BindJSON(r, &body); cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		if !checkSecret(w, r, deps, body.Secret) {
			return
		}

		resp.RespondSuccess(w, r, map[string][]string{"bannedIPs": deps.Room.BannedIPs()})
	}
}
