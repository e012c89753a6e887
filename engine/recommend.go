package engine

import (
	"sort"

	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/catalog"
)

const DefaultRecommendationCount = 3

const (
	topSkillSlots    = 2
	topCategorySlots = 1
)

// Recommend returns up to k exercise ids to surface next. It favours unplayed
// exercises in the user's most practised skill, then category, then anything
// unplayed, and finally the user's most played exercises. Ties are broken by
// catalog order.
func Recommend(history []activity.Session, cat *catalog.Catalog, k int) []string {
	if k <= 0 {
		return []string{}
	}
	if len(history) == 0 {
		cold := cat.ColdStart()
		if len(cold) > k {
			cold = cold[:k]
		}
		return cold
	}

	exerciseCounts := make(map[string]int)
	skillCounts := make(map[activity.SkillFocus]int)
	categoryCounts := make(map[activity.Category]int)
	for _, s := range history {
		exerciseCounts[s.ExerciseID]++
		skillCounts[s.SkillFocus]++
		categoryCounts[s.Category]++
	}

	exercises := cat.Exercises()
	topSkill := topSkillByCatalogOrder(exercises, skillCounts)
	topCategory := topCategoryByCatalogOrder(exercises, categoryCounts)

	var unplayed []activity.Metadata
	for _, ex := range exercises {
		if exerciseCounts[ex.ID] == 0 {
			unplayed = append(unplayed, ex)
		}
	}

	picked := make(map[string]bool, k)
	result := make([]string, 0, k)
	take := func(id string) {
		if len(result) < k && !picked[id] {
			picked[id] = true
			result = append(result, id)
		}
	}

	added := 0
	for _, ex := range unplayed {
		if added == topSkillSlots || len(result) == k {
			break
		}
		if ex.SkillFocus == topSkill && !picked[ex.ID] {
			take(ex.ID)
			added++
		}
	}

	added = 0
	for _, ex := range unplayed {
		if added == topCategorySlots || len(result) == k {
			break
		}
		if ex.Category == topCategory && !picked[ex.ID] {
			take(ex.ID)
			added++
		}
	}

	for _, ex := range unplayed {
		if len(result) == k {
			break
		}
		take(ex.ID)
	}

	if len(result) < k {
		mostPlayed := make([]activity.Metadata, 0, len(exercises))
		for _, ex := range exercises {
			if exerciseCounts[ex.ID] > 0 {
				mostPlayed = append(mostPlayed, ex)
			}
		}
		sort.SliceStable(mostPlayed, func(i, j int) bool {
			return exerciseCounts[mostPlayed[i].ID] > exerciseCounts[mostPlayed[j].ID]
		})
		for _, ex := range mostPlayed {
			if len(result) == k {
				break
			}
			take(ex.ID)
		}
	}

	return result
}

func topSkillByCatalogOrder(exercises []activity.Metadata, counts map[activity.SkillFocus]int) activity.SkillFocus {
	var top activity.SkillFocus
	best := 0
	seen := make(map[activity.SkillFocus]bool)
	for _, ex := range exercises {
		if seen[ex.SkillFocus] {
			continue
		}
		seen[ex.SkillFocus] = true
		if counts[ex.SkillFocus] > best {
			best = counts[ex.SkillFocus]
			top = ex.SkillFocus
		}
	}
	return top
}

func topCategoryByCatalogOrder(exercises []activity.Metadata, counts map[activity.Category]int) activity.Category {
	var top activity.Category
	best := 0
	seen := make(map[activity.Category]bool)
	for _, ex := range exercises {
		if seen[ex.Category] {
			continue
		}
		seen[ex.Category] = true
		if counts[ex.Category] > best {
			best = counts[ex.Category]
			top = ex.Category
		}
	}
	return top
}
