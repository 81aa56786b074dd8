package catalog

import "strings"

const CategoryGeneral = "general"

type topicRule struct {
	topic    string
	keywords []string
}

// Rules are checked in order; the first topic with a keyword hit wins.
var topicRules = []topicRule{
	{topic: "education", keywords: []string{"skill", "training", "kaushal", "education", "scholarship"}},
	{topic: "housing", keywords: []string{"housing", "awas", "home"}},
	{topic: "pension", keywords: []string{"pension", "atal"}},
	{topic: "agriculture", keywords: []string{"crop", "fasal", "insurance", "farmer", "agriculture"}},
	{topic: "entrepreneurship", keywords: []string{"business", "loan", "mudra", "entrepreneur", "stand-up"}},
	{topic: "social_welfare", keywords: []string{"girl", "daughter", "sukanya"}},
}

// Category derives a topic for the entry from its name and description.
func (e *Entry) Category() string {
	name := strings.ToLower(e.Name)
	desc := strings.ToLower(e.Description)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) || strings.Contains(desc, kw) {
				return rule.topic
			}
		}
	}
	return CategoryGeneral
}
