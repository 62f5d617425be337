package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cre-analytics/internal/model"
)

// propertyIDField is the rich-text column keying analysis pages to
// properties. The upsert lookup filters on it.
const propertyIDField = "Property ID"

// Exporter publishes property credit analyses as pages in one Notion
// database.
type Exporter struct {
	client Client
	dbID   string
}

// NewExporter creates an Exporter targeting the given analysis database.
func NewExporter(c Client, dbID string) *Exporter {
	return &Exporter{client: c, dbID: dbID}
}

// Export upserts the analysis into the database: when a page for the
// property already exists its scoring columns are updated in place,
// otherwise a new page is created with the recommendations as bullet
// blocks. Returns the page ID and whether a page was created.
func (e *Exporter) Export(ctx context.Context, title string, a *model.PropertyCreditAnalysis) (string, bool, error) {
	if a == nil {
		return "", false, eris.New("notion: nil analysis")
	}
	if a.PropertyID == "" {
		return "", false, eris.New("notion: analysis has no property ID")
	}
	if title == "" {
		title = a.PropertyID
	}

	props := analysisProperties(title, a)

	existing, err := FindAnalysisPage(ctx, e.client, e.dbID, a.PropertyID)
	if err != nil {
		return "", false, err
	}

	if existing != nil {
		page, err := e.client.UpdatePage(ctx, string(existing.ID), &notionapi.PageUpdateRequest{
			Properties: props,
		})
		if err != nil {
			return "", false, eris.Wrapf(err, "notion: update analysis page for property %s", a.PropertyID)
		}
		return string(page.ID), false, nil
	}

	page, err := e.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(e.dbID),
		},
		Properties: props,
		Children:   recommendationBlocks(a.Recommendations),
	})
	if err != nil {
		return "", false, eris.Wrapf(err, "notion: create analysis page for property %s", a.PropertyID)
	}
	return string(page.ID), true, nil
}

// analysisProperties maps the analysis onto the database columns: the page
// title, the property key, the risk level select, and the score number.
func analysisProperties(title string, a *model.PropertyCreditAnalysis) notionapi.Properties {
	analyzed := notionapi.Date(a.CreatedAt)

	return notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: title}},
			},
		},
		propertyIDField: notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: a.PropertyID}},
			},
		},
		"Risk Level": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(a.OverallRiskLevel)},
		},
		"Risk Score": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: a.OverallRiskScore,
		},
		"Analyzed": notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &analyzed},
		},
	}
}

// recommendationBlocks renders every populated recommendation category as
// bulleted list items, in a stable category order.
func recommendationBlocks(recs model.Recommendations) []notionapi.Block {
	lines := flattenRecommendations(recs)
	if len(lines) == 0 {
		return nil
	}

	blocks := make([]notionapi.Block, 0, len(lines)+1)
	blocks = append(blocks, notionapi.Heading2Block{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeHeading2,
		},
		Heading2: notionapi.Heading{
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: "Recommendations"}},
			},
		},
	})

	for _, line := range lines {
		blocks = append(blocks, notionapi.BulletedListItemBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeBulletedListItem,
			},
			BulletedListItem: notionapi.ListItem{
				RichText: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: line}},
				},
			},
		})
	}
	return blocks
}

func flattenRecommendations(recs model.Recommendations) []string {
	var lines []string
	lines = append(lines, recs.RiskMitigation...)
	lines = append(lines, recs.TenantRetention...)
	lines = append(lines, recs.LeaseStructure...)
	lines = append(lines, recs.PortfolioBalance...)
	return lines
}
