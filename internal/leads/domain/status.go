// Package domain holds the pure lead lifecycle rules: status tokens,
// budget parsing, follow-up state, and display helpers. Nothing in this
// package touches the database or the network.
package domain

import (
	"fmt"
	"strings"

	"estate_crm_backend/platform/apperr"
)

// Lead pipeline statuses, in pipeline order.
const (
	StatusNew         = "new"
	StatusContacted   = "contacted"
	StatusQualified   = "qualified"
	StatusSiteVisit   = "site_visit"
	StatusNegotiation = "negotiation"
	StatusConverted   = "converted"
	StatusLost        = "lost"
)

// AllStatuses lists every valid status token in pipeline order.
var AllStatuses = []string{
	StatusNew,
	StatusContacted,
	StatusQualified,
	StatusSiteVisit,
	StatusNegotiation,
	StatusConverted,
	StatusLost,
}

var validStatuses = func() map[string]struct{} {
	set := make(map[string]struct{}, len(AllStatuses))
	for _, s := range AllStatuses {
		set[s] = struct{}{}
	}
	return set
}()

// IsValidStatus reports whether token is a known pipeline status.
func IsValidStatus(token string) bool {
	_, ok := validStatuses[token]
	return ok
}

// ValidateTransition checks a requested status change. Any transition
// between known tokens is allowed, including re-opening converted or lost
// leads; agents regularly correct mistakes, so the pipeline order is
// advisory, not enforced.
func ValidateTransition(from, to string) error {
	if !IsValidStatus(to) {
		return apperr.Validation(fmt.Sprintf("invalid lead status: %q", to))
	}
	if !IsValidStatus(from) {
		return apperr.Validation(fmt.Sprintf("invalid lead status: %q", from))
	}
	return nil
}

// StatusLabel converts a snake_case status token to its display form,
// e.g. "site_visit" becomes "Site Visit". Unknown tokens are title-cased
// the same way rather than rejected so stale data still renders.
func StatusLabel(token string) string {
	if token == "" {
		return ""
	}
	words := strings.Split(token, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// StatusColor returns the badge color class for a status token, used by
// clients to render consistent pipeline badges.
func StatusColor(token string) string {
	switch token {
	case StatusNew:
		return "bg-blue-100 text-blue-800"
	case StatusContacted:
		return "bg-yellow-100 text-yellow-800"
	case StatusQualified:
		return "bg-purple-100 text-purple-800"
	case StatusSiteVisit:
		return "bg-orange-100 text-orange-800"
	case StatusNegotiation:
		return "bg-indigo-100 text-indigo-800"
	case StatusConverted:
		return "bg-green-100 text-green-800"
	case StatusLost:
		return "bg-red-100 text-red-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}

// Lead sources.
const (
	SourceWebsite  = "website"
	SourceReferral = "referral"
	SourceWalkIn   = "walk_in"
	SourcePortal   = "portal"
	SourceSocial   = "social_media"
	SourceCampaign = "campaign"
	SourceOther    = "other"
)

// AllSources lists the recognised lead sources.
var AllSources = []string{
	SourceWebsite,
	SourceReferral,
	SourceWalkIn,
	SourcePortal,
	SourceSocial,
	SourceCampaign,
	SourceOther,
}

// IsValidSource reports whether token is a known lead source.
func IsValidSource(token string) bool {
	for _, s := range AllSources {
		if s == token {
			return true
		}
	}
	return false
}
