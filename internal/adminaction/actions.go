package adminaction

type ActionType string

const (
	ActionReturnToRequester ActionType = "RETURN_TO_REQUESTER"
	ActionCancelRequest     ActionType = "CANCEL_REQUEST"
	ActionOverrideStage     ActionType = "OVERRIDE_STAGE"
)
