// scppg - extract a photoplethysmogram from smartphone camera frames
//  Copyright (C) 2024, the scppg authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValidates(t *testing.T) {
	conf := DefaultRecorderConfig()
	assert.NoError(t, conf.Validate())
}

func TestMinSecsGreaterThanMaxSecsDoesntValidate(t *testing.T) {
	conf := DefaultRecorderConfig()
	conf.MinSecs = 5
	conf.MaxSecs = 2
	assert.EqualError(t, conf.Validate(), "max-secs should be larger than min-secs")
}

func TestZeroMinSecsDoesntValidate(t *testing.T) {
	conf := DefaultRecorderConfig()
	conf.MinSecs = 0
	assert.EqualError(t, conf.Validate(), "min-secs should be positive")
}

func TestNegativePreviewSecsDoesntValidate(t *testing.T) {
	conf := DefaultRecorderConfig()
	conf.PreviewSecs = -1
	assert.EqualError(t, conf.Validate(), "preview-secs should not be negative")
}
