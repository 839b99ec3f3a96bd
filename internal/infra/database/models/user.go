package models

import (
	"time"
)

// User is the persisted account document. Groups and Managers hold
// serialized JSON; Managers is NULL on records written before the
// delegation feature existed, which the startup backfill rewrites.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	Admin       bool      `json:"admin" gorm:"type:boolean;not null;default:false"`
	DisplayName string    `json:"displayName" gorm:"type:text"`
	Groups      string    `json:"groups" gorm:"type:text"`
	Managers    *string   `json:"managers" gorm:"type:text"`
	IsManaged   bool      `json:"isManaged" gorm:"type:boolean;not null;default:false;index"`
	Revision    int64     `json:"revision" gorm:"type:bigint;not null;default:1"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
