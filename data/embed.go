package data

import (
	_ "embed"
)

// SeedRoles lists the roles every deployment starts with
//
//go:embed seed/roles.json
var SeedRoles []byte
