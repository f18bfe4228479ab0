package pmanager

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tmscout-backend/lib/htmlutil"
	"tmscout-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SkillValue is one attribute off a player page. The site's attribute set
// isn't contractually fixed, most values are plain numbers but fitness and
// health style rows render as text ("Completely Fit", "100%").
type SkillValue struct {
	Number  int64  `json:"number,omitempty"`
	Text    string `json:"text,omitempty"`
	Numeric bool   `json:"numeric"`
}

func NumberSkill(n int64) SkillValue {
	return SkillValue{Number: n, Numeric: true}
}

func TextSkill(t string) SkillValue {
	return SkillValue{Text: t}
}

func (v SkillValue) String() string {
	if v.Numeric {
		return strconv.FormatInt(v.Number, 10)
	}
	return v.Text
}

// Profile is the descriptive half of a player: identity plus the
// open-ended skill table.
type Profile struct {
	Id          string
	Name        string
	Position    string
	Age         int
	Nationality string
	Quality     string
	Potential   string
	Skills      map[string]SkillValue
	Url         string
}

// Negotiation is the market half of a player as rendered on the
// negotiation page. Raw fields only, derived economics live downstream.
type Negotiation struct {
	EstimatedValue int64
	AskingPrice    int64
	BidsCount      int64
	BidsAverage    int64
	Deadline       string
}

// Player is one full extraction: both pages for one id.
type Player struct {
	Profile     Profile
	Negotiation Negotiation
}

const missing = "N/A"

func labelOr(doc *goquery.Document, label, fallback string) string {
	value, ok := htmlutil.LabelValue(doc, label)
	if !ok || value == "" {
		return fallback
	}
	return value
}

// Profile fetches and extracts ver_jogador.asp for the given id. A
// recognized label missing from the page degrades to its default, only a
// failed fetch is an error.
func (c *Client) Profile(ctx context.Context, id string) (Profile, error) {
	ctx, span := tracer.Start(ctx, "client:Profile")
	defer span.End()
	span.SetAttributes(attribute.String("player_id", id))

	link := fmt.Sprintf("/ver_jogador.asp?jog_id=%s", id)
	doc, err := c.fetchDocument(ctx, link)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch profile page")
		return Profile{}, err
	}

	p := Profile{
		Id:  id,
		Url: c.resolve(link),
	}

	p.Name = missing
	if name := htmlutil.CleanText(doc.Find(`font[size="+1"]`).First()); name != "" {
		p.Name = name
	}
	p.Position = labelOr(doc, "Position", missing)
	p.Nationality = labelOr(doc, "Nationality", missing)

	ageText := strings.TrimSpace(strings.ReplaceAll(labelOr(doc, "Age", ""), "Years", ""))
	if textutil.IsDigits(ageText) {
		age, _ := strconv.Atoi(strings.TrimSpace(ageText))
		p.Age = age
	}

	p.Skills = extractSkills(doc)

	p.Quality = reportValue(doc, p.Skills, "Quality")
	p.Potential = reportValue(doc, p.Skills, "Potential")

	return p, nil
}

// reportValue prefers a value already picked up by the skill walk, the
// report rows share the skill rows' markup.
func reportValue(doc *goquery.Document, skills map[string]SkillValue, label string) string {
	if v, ok := skills[label]; ok {
		return v.String()
	}
	return labelOr(doc, label, missing)
}

// extractSkills walks every list1/list2 cell with a bold label and pairs
// it with the first plausible value among its following siblings: a pure
// number, a percentage, or a fitness descriptor. Rows it can't pair are
// dropped, never defaulted, the skill map is schema-free.
func extractSkills(doc *goquery.Document) map[string]SkillValue {
	skills := map[string]SkillValue{}

	doc.Find("td.list1, td.list2").Each(func(_ int, td *goquery.Selection) {
		bold := td.Find("b").First()
		if bold.Length() == 0 {
			return
		}
		name := htmlutil.CleanText(bold)
		if name == "" {
			return
		}

		for sib := td.Next(); sib.Length() > 0; sib = sib.Next() {
			text := htmlutil.CleanText(sib)
			if text == "" {
				continue
			}
			if textutil.IsDigits(text) {
				n, _ := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
				skills[name] = NumberSkill(n)
				return
			}
			if strings.Contains(text, "%") || strings.Contains(text, "Fit") {
				skills[name] = TextSkill(text)
				return
			}
		}
	})

	return skills
}

// Negotiation fetches and extracts comprar_jog_lista.asp for the given
// id. Unparsable money fields fall back to zero, a missing deadline to
// "N/A".
func (c *Client) Negotiation(ctx context.Context, id string) (Negotiation, error) {
	ctx, span := tracer.Start(ctx, "client:Negotiation")
	defer span.End()
	span.SetAttributes(attribute.String("player_id", id))

	doc, err := c.fetchDocument(ctx, fmt.Sprintf("/comprar_jog_lista.asp?jg_id=%s", id))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch negotiation page")
		return Negotiation{}, err
	}

	n := Negotiation{
		EstimatedValue: textutil.ParseMoney(labelOr(doc, "Estimated Transfer Value", "")),
		AskingPrice:    textutil.ParseMoney(labelOr(doc, "Asking Price for Bid", "")),
		BidsCount:      textutil.ParseMoney(labelOr(doc, "Bids", "")),
		BidsAverage:    textutil.ParseMoney(labelOr(doc, "Bids Average (Scout)", "")),
		Deadline:       labelOr(doc, "Deadline", missing),
	}
	return n, nil
}

// Player runs both fetches for one id. Either fetch failing skips the
// whole player, a half-filled record is never returned.
func (c *Client) Player(ctx context.Context, id string) (Player, error) {
	profile, err := c.Profile(ctx, id)
	if err != nil {
		return Player{}, err
	}
	negotiation, err := c.Negotiation(ctx, id)
	if err != nil {
		return Player{}, err
	}
	return Player{Profile: profile, Negotiation: negotiation}, nil
}
