package pmanager

import (
	"context"
	"fmt"
	"regexp"

	"tmscout-backend/lib/htmlutil"
	"tmscout-backend/lib/textutil"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TeamInfo is the label/value club info page flattened out. Monetary
// fields keep their rendered text next to the parsed integer because the
// site annotates some of them with deltas.
type TeamInfo struct {
	Manager            string
	TeamName           string
	FinancialSituation string
	CurrentDivision    string
	TeamReputation     string
	Academy            string
	PlayersCount       string
	AgeAverage         string
	FanClubSize        string

	AvailableFunds     string
	AvailableFundsInt  int64
	WageAverage        string
	WageAverageInt     int64
	WagesSum           string
	WagesSumInt        int64
	WageRoof           string
	WageRoofInt        int64
	PlayersValue       string
	PlayersValueInt    int64
}

// TeamInfo extracts the logged-in club's info page.
func (c *Client) TeamInfo(ctx context.Context) (TeamInfo, error) {
	ctx, span := tracer.Start(ctx, "client:TeamInfo")
	defer span.End()

	doc, err := c.fetchDocument(ctx, "/info.asp")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch team info page")
		return TeamInfo{}, err
	}

	info := TeamInfo{
		Manager:            labelOr(doc, "Manager", missing),
		TeamName:           labelOr(doc, "Name", missing),
		FinancialSituation: labelOr(doc, "Financial Situation", missing),
		CurrentDivision:    labelOr(doc, "Current Division", missing),
		TeamReputation:     labelOr(doc, "Team Reputation", missing),
		Academy:            labelOr(doc, "Academy", missing),
		PlayersCount:       labelOr(doc, "Players", missing),
		AgeAverage:         labelOr(doc, "Age Average", missing),
		FanClubSize:        labelOr(doc, "Fan Club Size", missing),
		AvailableFunds:     labelOr(doc, "Available Funds", missing),
		WageAverage:        labelOr(doc, "Wage Average", missing),
		WagesSum:           labelOr(doc, "Wages Sum", missing),
		WageRoof:           labelOr(doc, "Wage Roof of Club", missing),
		PlayersValue:       labelOr(doc, "Players Value", missing),
	}

	info.AvailableFundsInt = textutil.ParseMoney(info.AvailableFunds)
	info.WageAverageInt = textutil.ParseMoney(info.WageAverage)
	info.WagesSumInt = textutil.ParseMoney(info.WagesSum)
	info.WageRoofInt = textutil.ParseMoney(info.WageRoof)
	info.PlayersValueInt = textutil.ParseMoney(info.PlayersValue)

	return info, nil
}

var squadLinkRegex = regexp.MustCompile(`ver_jogador\.asp\?jog_id=(\d+)`)

// TeamPlayers harvests the player ids off a team's squad page. The link
// must be a full site URL, callers validate bare ids before building one.
func (c *Client) TeamPlayers(ctx context.Context, teamURL string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:TeamPlayers")
	defer span.End()
	span.SetAttributes(attribute.String("url", teamURL))

	doc, err := c.fetchDocument(ctx, teamURL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch team page")
		return nil, err
	}

	var ids []string
	seen := map[string]bool{}
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("tr.list1 a, tr.list2 a")) {
		groups := squadLinkRegex.FindStringSubmatch(anchor.Href)
		if len(groups) < 2 {
			continue
		}
		id := groups[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	span.SetAttributes(attribute.Int("player_count", len(ids)))
	return ids, nil
}

// TeamURL builds the squad page link for a numeric team id.
func (c *Client) TeamURL(teamId string) string {
	return c.resolve(fmt.Sprintf("/ver_equipa.asp?equipa=%s&vjog=1", teamId))
}
