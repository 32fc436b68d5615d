package project

// taskCatalog is the fixed set of analysis micro tasks. Task ids and prompts
// never change at runtime; only assignee and content are user data.
var taskCatalog = []MicroTask{
	{ID: 1, Title: "Competitor Mapping", Description: "Identify similar restaurants operating in the zone.", DeliverableHint: "Map image or list of competitors."},
	{ID: 2, Title: "Menu and Price Analysis", Description: "Analyze the offer and prices of three competitors.", DeliverableHint: "Summary of dishes and average prices."},
	{ID: 3, Title: "Reviews and Online Reputation", Description: "Read reviews on Google and TripAdvisor.", DeliverableHint: "Summary of what customers like and dislike."},
	{ID: 4, Title: "Local Customer Profile", Description: "Who lives there? What are they looking for?", DeliverableHint: "Report on the resident profile."},
	{ID: 5, Title: "Visitor Profile", Description: "Who visits the zone?", DeliverableHint: "Report on the visitor profile."},
	{ID: 6, Title: "Product Catalog", Description: "Key ingredients by season.", DeliverableHint: "List of 15-20 ingredients."},
	{ID: 7, Title: "Local Supplier Map", Description: "Search for nearby producers.", DeliverableHint: "Profile of 3-5 real suppliers."},
	{ID: 8, Title: "Sustainability Audit", Description: "Sustainable practices viable in the zone.", DeliverableHint: "Report on sustainability."},
	{ID: 9, Title: "Innovation Benchmarking", Description: "Look for ideas elsewhere.", DeliverableHint: "Report on two inspiring restaurants."},
	{ID: 10, Title: "Visual Trends", Description: "Aesthetics and marketing.", DeliverableHint: "Moodboard or links to five social profiles."},
}

// TaskCatalog returns a fresh copy of the fixed micro task set.
func TaskCatalog() []MicroTask {
	tasks := make([]MicroTask, len(taskCatalog))
	copy(tasks, taskCatalog)
	return tasks
}

// Default returns the all-defaults canonical document: empty strings, empty
// lists, zeroed financials, and the fixed task catalog.
func Default() Project {
	return Project{
		Roster:     []Member{},
		Concept:    Concept{Values: []string{}},
		MicroTasks: TaskCatalog(),
		Dishes:     []Dish{},
		Roles: RoleSets{
			DesignerIDs: []string{},
			ArtisanIDs:  []string{},
			EditorIDs:   []string{},
		},
		PeerReviews: []PeerReview{},
	}
}
