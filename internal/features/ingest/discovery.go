package ingest

// DetectFormIDs collects the distinct lead form ids referenced by the ads'
// creatives, in first-seen order. Only the story spec link and video
// call-to-action values and the creative's own call-to-action value are
// inspected; other ids in the payload are not form references.
func DetectFormIDs(ads []Ad) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(cta *CallToAction) {
		if cta == nil || cta.Value == nil || cta.Value.LeadGenFormID == "" {
			return
		}
		id := string(cta.Value.LeadGenFormID)
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, ad := range ads {
		cr := ad.Creative
		if cr == nil {
			continue
		}
		if spec := cr.ObjectStorySpec; spec != nil {
			if spec.LinkData != nil {
				add(spec.LinkData.CallToAction)
			}
			if spec.VideoData != nil {
				add(spec.VideoData.CallToAction)
			}
		}
		add(cr.CallToAction)
	}
	return ids
}

// FilterAllowed keeps the ids present in allow. An empty allow-list keeps
// everything.
func FilterAllowed(ids, allow []string) []string {
	if len(allow) == 0 {
		return ids
	}
	allowed := make(map[string]struct{}, len(allow))
	for _, id := range allow {
		allowed[id] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
