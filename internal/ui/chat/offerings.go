// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// Offering is one topic card on the empty-chat screen. Selecting a card
// starts a new conversation seeded with the offering's query.
type Offering struct {
	Title       string
	Description string
	ComingSoon  bool
}

// OfferingTab groups offerings by business area.
type OfferingTab struct {
	ID        string
	Label     string
	Offerings []Offering
}

// OfferingTabs is the topic catalog shown before the first message.
var OfferingTabs = []OfferingTab{
	{
		ID:    "marketing",
		Label: "Marketing",
		Offerings: []Offering{
			{Title: "Instagram Marketing", Description: "Create engaging reels and grow your Instagram presence"},
			{Title: "Facebook Ads", Description: "Create targeted ads for the best ROI"},
			{Title: "LinkedIn Growth", Description: "Build your professional network and brand presence with engaging posts"},
			{Title: "SEO content generator", Description: "Generate the best SEO optimised content for your website"},
		},
	},
	{
		ID:    "operations",
		Label: "Operations",
		Offerings: []Offering{
			{Title: "Process Optimization", Description: "Streamline your business operations for efficiency", ComingSoon: true},
			{Title: "Team Management", Description: "Improve team collaboration and productivity", ComingSoon: true},
		},
	},
	{
		ID:    "finance",
		Label: "Finance",
		Offerings: []Offering{
			{Title: "Financial Analysis", Description: "Get insights into your financial performance", ComingSoon: true},
			{Title: "Expense Tracking", Description: "Monitor and optimize your business expenses", ComingSoon: true},
		},
	},
	{
		ID:    "sales",
		Label: "Sales",
		Offerings: []Offering{
			{Title: "Sales Strategy", Description: "Develop effective sales strategies and tactics", ComingSoon: true},
			{Title: "Lead Generation", Description: "Generate and nurture quality sales leads", ComingSoon: true},
		},
	},
}

// Query returns the text sent when the offering is picked. Topics not yet
// backed by an agent fall back to a general conversation.
func (o Offering) Query() string {
	if o.ComingSoon {
		return "general"
	}
	return o.Title
}
