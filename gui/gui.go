// This file is part of gopherAdvance.
//
// gopherAdvance is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gopherAdvance is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gopherAdvance.  If not, see <https://www.gnu.org/licenses/>.

// Package gui defines the operations and events common to all graphical
// user interfaces. The concrete implementations live in the sub-packages.
package gui

// GUI defines the operations that can be performed on a visual user
// interface.
type GUI interface {
	// Send a request to set a GUI feature.
	SetFeature(request FeatureReq, args ...FeatureReqData) error

	// Return the current state of a GUI feature.
	GetFeature(request FeatureReq) (FeatureReqData, error)

	// Service the GUI's event queue. Implementations expect this to be
	// called regularly, ideally once per frame, and from the same
	// goroutine that created the GUI.
	Service()
}

// Sentinal error returned if the GUI does not support a requested feature.
const UnsupportedGuiFeature = "unsupported gui feature: %v"
