// Package lifecycle computes account status transitions as pure functions.
// Statut and the related metadata keys are always produced together, so a
// persisted compte can never show a statut that disagrees with its metadata.
package lifecycle

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

// Event is one tagged transition request. Apply is the only entry point;
// events are not applied directly.
type Event interface {
	apply(c domain.Compte, now time.Time) (domain.Compte, error)
}

// Apply computes the compte resulting from ev at instant now. The input is
// never mutated; on error it is returned unchanged. Every successful
// transition bumps metadata.version and stamps metadata.derniereModification.
func Apply(c domain.Compte, ev Event, now time.Time) (domain.Compte, error) {
	out, err := ev.apply(c, now)
	if err != nil {
		return c, err
	}
	out.Metadata = out.Metadata.Merge(domain.Metadata{
		domain.MetaVersion:              c.Metadata.Version() + 1,
		domain.MetaDerniereModification: now.Format(time.RFC3339),
	})
	out.UpdatedAt = now
	return out, nil
}

// Block places an active compte in statut bloque for the given duration.
type Block struct {
	Motif string
	Duree int
	Unite domain.DureeUnite
}

func (ev Block) apply(c domain.Compte, now time.Time) (domain.Compte, error) {
	if ev.Motif == "" {
		return c, domain.ErrMotifRequired
	}
	if utf8.RuneCountInString(ev.Motif) > 255 {
		return c, fmt.Errorf("motif exceeds 255 characters: %w", domain.ErrValidation)
	}
	if c.Statut != domain.StatutActif {
		return c, fmt.Errorf("only an active account can be blocked: %w", domain.ErrInvalidStateTransition)
	}

	fin, err := EndOfBlock(now, ev.Duree, ev.Unite)
	if err != nil {
		return c, err
	}

	c.Statut = domain.StatutBloque
	c.Metadata = c.Metadata.Merge(domain.Metadata{
		domain.MetaMotifBlocage:     ev.Motif,
		domain.MetaDateDebutBlocage: now.Format(time.RFC3339),
		domain.MetaDateFinBlocage:   fin.Format(time.RFC3339),
		domain.MetaDureeBlocage:     ev.Duree,
		domain.MetaUniteDuree:       string(ev.Unite),
	})
	return c, nil
}

// Unblock returns a blocked compte to statut actif. Expiry of
// dateFinBlocage never unblocks by itself; this event is the only way out.
type Unblock struct{}

func (Unblock) apply(c domain.Compte, now time.Time) (domain.Compte, error) {
	if c.Statut != domain.StatutBloque {
		return c, fmt.Errorf("account must be blocked to be unblocked: %w", domain.ErrInvalidStateTransition)
	}

	c.Statut = domain.StatutActif
	c.Metadata = c.Metadata.Without(
		domain.MetaMotifBlocage,
		domain.MetaDateDebutBlocage,
		domain.MetaDateFinBlocage,
		domain.MetaDureeBlocage,
		domain.MetaUniteDuree,
	).Merge(domain.Metadata{
		domain.MetaDateDeblocage: now.Format(time.RFC3339),
	})
	return c, nil
}

// Close moves a compte to statut ferme. The closure timestamp is stamped on
// both the column and the metadata, and the record is soft-deleted, always
// together, whichever path requested the closure.
type Close struct{}

func (Close) apply(c domain.Compte, now time.Time) (domain.Compte, error) {
	c.Statut = domain.StatutFerme
	c.DateFermeture = &now
	c.DeletedAt = &now
	c.Metadata = c.Metadata.Merge(domain.Metadata{
		domain.MetaDateFermeture: now.Format(time.RFC3339),
	})
	return c, nil
}

// Update is the generic PATCH transition: an optional target statut plus an
// optional metadata payload, shallow-merged key by key.
type Update struct {
	Statut       *domain.CompteStatut
	MotifBlocage *string
	Metadata     domain.Metadata
	Titulaire    *string
}

// Blocks requested through the generic path carry no duration; the window
// defaults to one month.
const defaultBlockDuree = 1

func (ev Update) apply(c domain.Compte, now time.Time) (domain.Compte, error) {
	if ev.Statut == nil && ev.MotifBlocage == nil && ev.Metadata == nil && ev.Titulaire == nil {
		return c, domain.ErrEmptyUpdate
	}

	if ev.Titulaire != nil {
		c.Titulaire = *ev.Titulaire
	}
	if ev.Metadata != nil {
		c.Metadata = c.Metadata.Merge(ev.Metadata)
	}

	if ev.Statut == nil {
		return c, nil
	}

	switch *ev.Statut {
	case domain.StatutBloque:
		motif := ""
		if ev.MotifBlocage != nil {
			motif = *ev.MotifBlocage
		}
		if motif == "" {
			return c, domain.ErrMotifRequired
		}
		fin, err := EndOfBlock(now, defaultBlockDuree, domain.UniteMois)
		if err != nil {
			return c, err
		}
		c.Statut = domain.StatutBloque
		c.Metadata = c.Metadata.Merge(domain.Metadata{
			domain.MetaMotifBlocage:     motif,
			domain.MetaDateDebutBlocage: now.Format(time.RFC3339),
			domain.MetaDateFinBlocage:   fin.Format(time.RFC3339),
			domain.MetaDureeBlocage:     defaultBlockDuree,
			domain.MetaUniteDuree:       string(domain.UniteMois),
		})
	case domain.StatutActif:
		c.Statut = domain.StatutActif
		c.Metadata = c.Metadata.Without(domain.MetaMotifBlocage)
	case domain.StatutFerme:
		return Close{}.apply(c, now)
	default:
		return c, domain.ErrInvalidStatut
	}

	return c, nil
}
