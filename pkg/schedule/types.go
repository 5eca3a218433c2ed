package schedule

// Locale is one language variant of a session or speaker.
type Locale struct {
	Title       string `json:"title,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// Session is a single talk or slot.
//
// Start and End hold the provider's timestamp strings; they are parsed by a
// timefmt.Formatter when grouping and rendering so the zone stays explicit.
type Session struct {
	ID       string   `json:"id"`
	Type     string   `json:"type,omitempty"`
	Room     string   `json:"room"`
	Start    string   `json:"start"`
	End      string   `json:"end,omitempty"`
	Language string   `json:"language,omitempty"`
	Speakers []string `json:"speakers"`
	Tags     []string `json:"tags,omitempty"`
	Zh       Locale   `json:"zh"`
	En       Locale   `json:"en"`
}

// Speaker is a roster entry referenced by Session.Speakers.
type Speaker struct {
	ID     string `json:"id"`
	Avatar string `json:"avatar,omitempty"`
	Zh     Locale `json:"zh"`
	En     Locale `json:"en"`
}

// Name returns the speaker's name in locale ("zh" or "en"), empty when that
// locale has no name.
func (s Speaker) Name(locale string) string {
	if locale == "en" {
		return s.En.Name
	}
	return s.Zh.Name
}

// DisplayName is like Name but falls back to the other locale when the
// requested one is empty.
func (s Speaker) DisplayName(locale string) string {
	if name := s.Name(locale); name != "" {
		return name
	}
	if locale == "en" {
		return s.Zh.Name
	}
	return s.En.Name
}

// Entity is a named lookup entry (room, session type, tag) passed through
// from the provider for the viewer.
type Entity struct {
	ID string `json:"id"`
	Zh Locale `json:"zh"`
	En Locale `json:"en"`
}

// Document is the full normalized schedule.
type Document struct {
	Sessions     []Session `json:"sessions"`
	Speakers     []Speaker `json:"speakers"`
	SessionTypes []Entity  `json:"session_types,omitempty"`
	Rooms        []Entity  `json:"rooms,omitempty"`
	Tags         []Entity  `json:"tags,omitempty"`
}

// Roster indexes speakers by id.
type Roster map[string]Speaker

// NewRoster builds a Roster. When ids repeat the first entry wins.
func NewRoster(speakers []Speaker) Roster {
	r := make(Roster, len(speakers))
	for _, s := range speakers {
		if _, ok := r[s.ID]; !ok {
			r[s.ID] = s
		}
	}
	return r
}

// Roster returns the document's speaker index.
func (d *Document) Roster() Roster { return NewRoster(d.Speakers) }

// Resolve looks up ids in order. Ids that do not resolve are returned in
// missing and left out of found; order is preserved in both.
func (r Roster) Resolve(ids []string) (found []Speaker, missing []string) {
	found = make([]Speaker, 0, len(ids))
	for _, id := range ids {
		if s, ok := r[id]; ok {
			found = append(found, s)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// Subset returns the roster entries referenced by sessions, keyed by id.
// The pipeline hashes it to key cached artifacts.
func (r Roster) Subset(sessions []Session) Roster {
	out := make(Roster)
	for _, s := range sessions {
		for _, id := range s.Speakers {
			if sp, ok := r[id]; ok {
				out[id] = sp
			}
		}
	}
	return out
}
