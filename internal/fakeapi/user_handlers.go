package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/fintrack-client/dashboard"
	"github.com/jrsteele09/fintrack-client/users"
)

func (s *Server) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

func (s *Server) updateProfile(c *gin.Context) {
	var p users.Profile
	if !bindJSON(c, &p) {
		return
	}
	p.Email = strings.TrimSpace(p.Email)
	p.Name = strings.TrimSpace(p.Name)

	if err := p.Validate(); err != nil {
		abortValidation(c, err)
		return
	}

	user := currentUser(c)
	if p.Email != "" && !strings.EqualFold(p.Email, user.Email) {
		if _, err := s.users.GetByEmail(p.Email); err == nil {
			abortError(c, http.StatusConflict, "Email already in use")
			return
		}
	}

	user.Apply(p)
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Upsert(user); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// deleteAccount removes the account with all its data and signs it out everywhere
func (s *Server) deleteAccount(c *gin.Context) {
	user := currentUser(c)
	if err := s.users.Delete(user.ID); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	s.ledger.dropUser(user.ID)
	if err := s.refresh.DeleteForUser(user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to drop refresh tokens")
	}
	if claims := currentClaims(c); claims != nil && claims.ExpiresAt != nil {
		_ = s.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
	}
	message(c, http.StatusOK, "Account deleted successfully")
}

func (s *Server) getDashboard(c *gin.Context) {
	userID := currentUser(c).ID
	c.JSON(http.StatusOK, dashboard.Build(
		s.ledger.transactions.list(userID),
		s.ledger.categories.list(userID),
	))
}
