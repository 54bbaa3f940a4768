package app

// UsageEventStore is the read surface for the persisted audit trail.
type UsageEventStore interface {
	Count() (int64, error)
}

// SessionCounter reports how many sessions a user owns.
type SessionCounter interface {
	CountByUserID(userID string) (int64, error)
}

type StatsService struct {
	users    UserStore
	docs     DocumentStore
	sessions SessionCounter
	events   UsageEventStore
}

type Stats struct {
	TotalDocuments int64            `json:"total_documents"`
	TotalUsers     int64            `json:"total_users"`
	MySessions     int64            `json:"my_sessions"`
	DocTypes       map[string]int64 `json:"doc_types"`
	UsageEvents    int64            `json:"usage_events"`
}

func NewStatsService(users UserStore, docs DocumentStore, sessions SessionCounter, events UsageEventStore) *StatsService {
	return &StatsService{users: users, docs: docs, sessions: sessions, events: events}
}

func (s *StatsService) Collect(userID string) (*Stats, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	docCount, err := s.docs.Count()
	if err != nil {
		return nil, err
	}
	userCount, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	sessionCount, err := s.sessions.CountByUserID(userID)
	if err != nil {
		return nil, err
	}
	docTypes, err := s.docs.CountByDocType()
	if err != nil {
		return nil, err
	}
	eventCount, err := s.events.Count()
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalDocuments: docCount,
		TotalUsers:     userCount,
		MySessions:     sessionCount,
		DocTypes:       docTypes,
		UsageEvents:    eventCount,
	}, nil
}
