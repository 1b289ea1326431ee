// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dirserve

import (
	"net/http"

	"github.com/cactus/mlog"
)

func httpReqToMlogMap(req *http.Request) mlog.Map {
	return mlog.Map{
		"method":      req.Method,
		"path":        req.RequestURI,
		"proto":       req.Proto,
		"host":        req.Host,
		"remote_addr": req.RemoteAddr,
	}
}

func resolvedToMlogMap(rp ResolvedPath) mlog.Map {
	return mlog.Map{
		"kind": rp.Kind.String(),
		"path": rp.Path,
		"rel":  rp.Rel,
	}
}
