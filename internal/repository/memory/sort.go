package memory

import (
	"sort"

	"ai-interview-coach-be/internal/entity"

	"github.com/google/uuid"
)

func sortTopics(topics []*entity.Topic) {
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Ordinal < topics[j].Ordinal
	})
}

// sortQuestionsByTopicOrder mirrors the SQL curated ordering: topic ordinal
// first, then the question's ordinal within its topic. Caller holds the lock.
func (r *SessionRepository) sortQuestionsByTopicOrder(sessionId uuid.UUID, questions []*entity.Question) {
	topicOrdinal := make(map[uuid.UUID]int)
	for _, t := range r.topics[sessionId] {
		topicOrdinal[t.Id] = t.Ordinal
	}
	sort.SliceStable(questions, func(i, j int) bool {
		ti, tj := topicOrdinal[questions[i].TopicId], topicOrdinal[questions[j].TopicId]
		if ti != tj {
			return ti < tj
		}
		return questions[i].Ordinal < questions[j].Ordinal
	})
}
