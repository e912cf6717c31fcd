package search

import (
	"context"
	"encoding/json"
	"fmt"
	"taskboard/client/es"
	"taskboard/domain"
	"taskboard/indices"
)

var (
	SearchTasksFunc = SearchTasks

	MaxResults = 1000
)

// SearchTasks queries the task index. Names in the results are the ones captured at index time.
func SearchTasks(ctx context.Context, q domain.TaskSearch) ([]domain.TaskDetail, error) {
	/*
		{
			"query": {
				"bool": {
					"must": [{"multi_match": {"query": "xxx", "fields": ["title^2", "description"], "operator": "AND"}}],
					"filter": [{"term": {"projectId.keyword": "..."}}]
				}
			},
			"size": 1000,
			"sort": ["_score", {"createdAt": {"order": "desc"}}]
		}
	*/
	musts := make([]es.H, 0, 1)
	if q.Text != "" {
		musts = append(musts, es.H{"multi_match": es.H{"query": q.Text, "fields": []string{"title^2", "description"}, "operator": "AND"}})
	} else {
		musts = append(musts, es.H{"match_all": es.H{}})
	}
	filters := make([]es.H, 0, 1)
	if q.ProjectID != nil {
		filters = append(filters, es.H{"term": es.H{"projectId.keyword": q.ProjectID.String()}})
	}

	root := es.H{"bool": es.H{"must": musts, "filter": filters}}
	sorts := []interface{}{"_score", es.H{"createdAt": es.H{"order": "desc"}}}
	r, err := es.SearchFunc(ctx, indices.TaskIndexName, es.H{"size": MaxResults, "query": root, "sort": sorts})
	if err != nil {
		return nil, err
	}

	details := make([]domain.TaskDetail, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := indices.TaskDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, fmt.Errorf("decode task document %s: %w", hit.Id, err)
		}
		details = append(details, doc.TaskDetail)
	}
	return details, nil
}
