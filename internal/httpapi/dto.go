package httpapi

import "github.com/nx584/panelgw/internal/panel"

// Wire DTOs are kept separate from internal/panel's domain structs so the
// JSON shape (snake_case, derived fields like "bypassed") stays stable
// independent of the in-memory model.

type zoneDTO struct {
	Number         int      `json:"number"`
	Name           string   `json:"name"`
	State          bool     `json:"state"`
	Bypassed       bool     `json:"bypassed"`
	ConditionFlags []string `json:"condition_flags"`
	TypeFlags      []string `json:"type_flags"`
}

func toZoneDTO(z panel.Zone) zoneDTO {
	return zoneDTO{
		Number:         z.Number,
		Name:           z.Name,
		State:          z.State,
		Bypassed:       z.Bypassed(),
		ConditionFlags: orEmpty(z.ConditionFlags),
		TypeFlags:      orEmpty(z.TypeFlags),
	}
}

type partitionDTO struct {
	Number         int      `json:"number"`
	ConditionFlags []string `json:"condition_flags"`
	Armed          bool     `json:"armed"`
	LastUser       byte     `json:"last_user"`
}

func toPartitionDTO(p panel.Partition) partitionDTO {
	return partitionDTO{
		Number:         p.Number,
		ConditionFlags: orEmpty(p.ConditionFlags),
		Armed:          p.Armed(),
		LastUser:       p.LastUser,
	}
}

type userDTO struct {
	Number               int      `json:"number"`
	Pin                  [6]int   `json:"pin"`
	AuthorityFlags       []string `json:"authority_flags"`
	AuthorizedPartitions []int    `json:"authorized_partitions"`
	Known                bool     `json:"known"`
}

func toUserDTO(u panel.User) userDTO {
	return userDTO{
		Number:               u.Number,
		Pin:                  u.Pin,
		AuthorityFlags:       orEmpty(u.AuthorityFlags),
		AuthorizedPartitions: orEmptyInt(u.AuthorizedPartitions),
		Known:                u.Known,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyInt(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
