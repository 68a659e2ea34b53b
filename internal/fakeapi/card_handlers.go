package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jrsteele09/fintrack-client/cards"
)

func (s *Server) listCards(c *gin.Context) {
	c.JSON(http.StatusOK, s.ledger.cards.list(currentUser(c).ID))
}

func (s *Server) createCard(c *gin.Context) {
	var p cards.Payload
	if !bindJSON(c, &p) {
		return
	}
	if err := p.Validate(s.now()); err != nil {
		abortValidation(c, err)
		return
	}

	card := cards.Card{
		ID:        uuid.New().String(),
		Type:      p.Type,
		Holder:    strings.TrimSpace(p.Holder),
		Number:    cards.FormatNumber(p.Number),
		Expiry:    cards.FormatExpiry(p.Expiry),
		Balance:   p.Balance,
		Bank:      strings.TrimSpace(p.Bank),
		Gradient:  p.Gradient,
		Border:    p.Border,
		Status:    p.Status,
		CreatedAt: s.now().UTC(),
	}
	if card.Gradient == "" {
		card.Gradient = cards.GradientFor(card.Bank)
	}
	if card.Border == "" {
		card.Border = cards.BorderFor(card.Type)
	}
	if card.Status == "" {
		card.Status = cards.StatusActive
	}

	s.ledger.cards.insert(currentUser(c).ID, card.ID, card)
	c.JSON(http.StatusCreated, card)
}

func (s *Server) getCard(c *gin.Context) {
	card, ok := s.ledger.cards.get(currentUser(c).ID, c.Param("id"))
	if !ok {
		abortError(c, http.StatusNotFound, "Card not found")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) updateCard(c *gin.Context) {
	var p cards.UpdatePayload
	if !bindJSON(c, &p) {
		return
	}
	if err := p.Validate(s.now()); err != nil {
		abortValidation(c, err)
		return
	}

	updated, found, _ := s.ledger.cards.update(currentUser(c).ID, c.Param("id"), func(card *cards.Card) error {
		p.Apply(card)
		return nil
	})
	if !found {
		abortError(c, http.StatusNotFound, "Card not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCard(c *gin.Context) {
	if !s.ledger.cards.remove(currentUser(c).ID, c.Param("id")) {
		abortError(c, http.StatusNotFound, "Card not found")
		return
	}
	message(c, http.StatusOK, "Card deleted successfully")
}
