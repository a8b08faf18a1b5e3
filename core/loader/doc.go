// Package loader mounts feature modules on the fiber application.
//
// Each feature implements Feature:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager loads enabled features in registration order, so
// 'inbound' and 'integrity' can be built and tested in isolation.
//
// # Usage
//
//	mgr := loader.NewManager(log)
//	mgr.Register(inbound.NewFeature(svc, log))
//	if err := mgr.LoadAll(app); err != nil {
//		return err
//	}
package loader
