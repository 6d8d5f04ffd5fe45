package fetch

import (
	"net/url"
	"strings"
)

// Board is a job board whose pages get dedicated selectors
type Board string

const (
	BoardGreenhouse Board = "greenhouse"
	BoardLever      Board = "lever"
	BoardWorkday    Board = "workday"
	BoardUnknown    Board = "unknown"
)

type boardRule struct {
	board   Board
	hosts   []string
	content []string
	noise   []string
}

var boardRules = []boardRule{
	{
		board:   BoardGreenhouse,
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-description__content", "#content"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	{
		board:   BoardLever,
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		board:   BoardWorkday,
		hosts:   []string{"workday.com", "myworkdayjobs.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
}

// genericContent matches postings on unrecognized sites
var genericContent = []string{
	".job-description",
	"#job-description",
	".job-content",
	".job-details",
	".posting-content",
	"[data-testid='job-description']",
	"main",
	"article",
	"#content",
}

// commonNoise is removed from every posting
var commonNoise = []string{
	"form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".legal-disclosure",
	".social-share",
	".cookie-banner",
	".cookie-consent",
}

// DetectBoard identifies the job board from a posting URL
func DetectBoard(rawURL string) Board {
	u, err := url.Parse(rawURL)
	if err != nil {
		return BoardUnknown
	}
	host := strings.ToLower(u.Hostname())
	for _, rule := range boardRules {
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return rule.board
			}
		}
	}
	return BoardUnknown
}

// ContentSelectors returns the posting body selectors for board, most specific first
func ContentSelectors(board Board) []string {
	for _, rule := range boardRules {
		if rule.board == board {
			return append(append([]string(nil), rule.content...), genericContent...)
		}
	}
	return append([]string(nil), genericContent...)
}

// NoiseSelectors returns the elements removed before extraction
func NoiseSelectors(board Board) []string {
	noise := append([]string(nil), commonNoise...)
	for _, rule := range boardRules {
		if rule.board == board {
			noise = append(noise, rule.noise...)
		}
	}
	return noise
}
