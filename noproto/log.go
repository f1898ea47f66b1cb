// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import "go.uber.org/zap"

// defaultLogger is used wherever a caller passes a nil *zap.Logger to
// NewBuffer/LoadBuffer — same nil-means-Nop convention arena.New uses.
func defaultLogger() *zap.Logger {
	return zap.NewNop()
}
