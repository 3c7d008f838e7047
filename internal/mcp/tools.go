package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/rumors/internal/theory"
)

func categorySlugs() []string {
	cats := theory.Categories()
	slugs := make([]string, len(cats))
	for i, c := range cats {
		slugs[i] = c.Slug
	}
	return slugs
}

func classificationNames() []string {
	out := make([]string, len(theory.Classifications))
	for i, c := range theory.Classifications {
		out[i] = string(c)
	}
	return out
}

func platformNames() []string {
	out := make([]string, len(theory.Platforms))
	for i, p := range theory.Platforms {
		out[i] = string(p)
	}
	return out
}

var generateToolDef = mcp.NewTool("theory_generate",
	mcp.WithDescription("Generate and store a new satirical conspiracy theory. "+
		"Unknown categories fall back to \"random\". With count > 1 the theories are generated "+
		"concurrently and stored only if every generation succeeds."),
	mcp.WithString("category",
		mcp.Description("Category slug"),
		mcp.Enum(categorySlugs()...),
	),
	mcp.WithString("classification",
		mcp.Description("Document marking (default TOP SECRET)"),
		mcp.Enum(classificationNames()...),
	),
	mcp.WithNumber("count",
		mcp.Description("Number of theories to generate (default 1)"),
		mcp.Min(1),
	),
)

var fetchToolDef = mcp.NewTool("theory_fetch",
	mcp.WithDescription("Fetch a stored theory by ID. Records a view."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Theory ID (theory_...)")),
)

var listToolDef = mcp.NewTool("theory_list",
	mcp.WithDescription("List stored theories. With a category, lists that category newest first; "+
		"otherwise sort selects recent, popular (most shared) or trending (most shared in the trending window)."),
	mcp.WithString("category", mcp.Description("Category slug filter")),
	mcp.WithString("sort",
		mcp.Description("recent (default), popular or trending"),
		mcp.Enum("recent", "popular", "trending"),
	),
	mcp.WithNumber("limit", mcp.Description("Max results (default 10, max 100)")),
)

var favoriteToolDef = mcp.NewTool("theory_favorite",
	mcp.WithDescription("Toggle a theory's favorite flag. Returns the new value."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Theory ID")),
)

var shareToolDef = mcp.NewTool("theory_share",
	mcp.WithDescription("Record a share and return the platform share URL and teaser text."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Theory ID")),
	mcp.WithString("platform",
		mcp.Required(),
		mcp.Description("Share target"),
		mcp.Enum(platformNames()...),
	),
)

var copyToolDef = mcp.NewTool("theory_copy",
	mcp.WithDescription("Record that a theory's text was copied."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Theory ID")),
)

var statsToolDef = mcp.NewTool("theory_stats",
	mcp.WithDescription("Per-category theory counts, every catalog category included."),
)

var analyticsToolDef = mcp.NewTool("theory_analytics",
	mcp.WithDescription("List a theory's analytics events, newest first."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Theory ID")),
)

var statusToolDef = mcp.NewTool("theory_status",
	mcp.WithDescription("Report generator and database connectivity."),
)
