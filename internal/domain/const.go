package domain

const (
	ActorCtxKey = "gg-actor"
)

const (
	ActorHeader = "X-Giftgrove-Actor"
)
