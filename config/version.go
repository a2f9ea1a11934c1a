// Copyright (c) 2025 - for information on the respective copyright owner
// see the NOTICE file and/or the repository at
// https://github.com/push-protocol/push-chain-sdk
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import "fmt"

// Version is a semantic version with optional metadata.
type Version struct {
	Major, Minor, Patch int
	Meta                string
}

// SDKVersion is the version of this module.
var SDKVersion = Version{Major: 0, Minor: 1, Patch: 0, Meta: "unstable"}

// String returns the version as major.minor.patch[-meta].
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Meta != "" {
		s += "-" + v.Meta
	}
	return s
}

// StringWithCommitID appends the first 8 characters of the commit id to the
// version string.
func (v Version) StringWithCommitID(commitID string) string {
	if commitID == "" {
		return v.String()
	}
	if len(commitID) > 8 {
		commitID = commitID[:8]
	}
	return v.String() + "-" + commitID
}
