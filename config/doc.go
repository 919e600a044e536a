// Package config loads the server settings and the routing tree from YAML,
// environment variables and an optional .env file, and validates them.
//
// The tree is a list of named routers. Each router lists its mounts in
// priority order (pattern and target router name) and optionally a leaf
// describing its terminal behavior:
//
//	root: root
//	routers:
//	  - name: root
//	    mounts:
//	      - pattern: "^api/"
//	        target: api
//	      - pattern: "^static/"
//	        target: files
//	  - name: api
//	    leaf:
//	      type: proxy
//	      strategy: round-robin
//	      upstreams:
//	        - url: http://localhost:9001
//	  - name: files
//	    leaf:
//	      type: filesystem
//	      root: ./public
//
// A router may be the target of several mounts. Mount graphs reachable from
// the root must be acyclic.
package config
