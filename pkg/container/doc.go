// Package container reads the local image worklist from a Docker-compatible engine.
// It lists tagged images with their repository digests, records which containers use each image and
// resolves explicitly requested references against the local image store.
//
// Usage example:
//
//	cli, err := container.NewClient(container.ClientOptions{Host: "/var/run/docker.sock"})
//	if err != nil {
//	    logrus.Fatal(err)
//	}
//	images, _ := cli.Images(ctx, []string{"nginx:1.25"})
package container
