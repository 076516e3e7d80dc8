package domain

// Signal bus channels and streams used to fan scan results out to the
// dashboard. They carry live state only; nothing reads them back as history.
const (
	ChannelOpportunities  = "ch:opportunities"
	ChannelOpportunityNew = "ch:opportunity_new"
	StreamOpportunityNew  = "stream:opportunity_new"
)
