// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/otiai10/copy"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
)

// JavaSEJarName is the name App Service runs a Java SE app from.
const JavaSEJarName = "app.jar"

// stageArtifacts copies each artifact into dir below its target path.
func stageArtifacts(dir string, artifacts []webapp.Artifact) error {
	for _, artifact := range artifacts {
		target := filepath.Join(dir, filepath.FromSlash(normalisePath(artifact.Path)), filepath.Base(artifact.File))
		logger.Debugf("staging %q as %q", artifact.File, target)
		if err := copy.Copy(artifact.File, target); err != nil {
			return coreerrors.Packaging(err, "staging "+artifact.File)
		}
	}
	return nil
}

// renameJavaSEJar renames the jar to run in the root of dir to app.jar.
// With several jars the one named after the build's final name is used.
func renameJavaSEJar(dir, finalName string) error {
	jars, err := filepath.Glob(filepath.Join(dir, "*.jar"))
	if err != nil {
		return coreerrors.Packaging(err, "listing staged jars")
	}
	var jar string
	switch {
	case len(jars) == 1:
		jar = jars[0]
	case finalName != "":
		for _, candidate := range jars {
			if filepath.Base(candidate) == finalName+".jar" {
				jar = candidate
			}
		}
	}
	if jar == "" {
		return errors.WithType(
			errors.Errorf("cannot choose the jar to run among %d staged jars, set finalName", len(jars)),
			coreerrors.PackagingError,
		)
	}
	if filepath.Base(jar) == JavaSEJarName {
		return nil
	}
	logger.Infof("Renaming %s to %s", filepath.Base(jar), JavaSEJarName)
	if err := os.Rename(jar, filepath.Join(dir, JavaSEJarName)); err != nil {
		return coreerrors.Packaging(err, "renaming "+filepath.Base(jar))
	}
	return nil
}

// zipDirectory archives the contents of dir into a zip file next to it
// and returns the file's path.
func zipDirectory(dir string) (string, error) {
	zipFile := strings.TrimSuffix(dir, string(filepath.Separator)) + ".zip"
	f, err := os.Create(zipFile)
	if err != nil {
		return "", coreerrors.Packaging(err, "creating zip package")
	}
	writer := zip.NewWriter(f)
	err = addDirectoryToZip(writer, dir)
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		removeQuietly(zipFile)
		return "", coreerrors.Packaging(err, "creating zip package")
	}
	return zipFile, nil
}

func addDirectoryToZip(writer *zip.Writer, root string) error {
	return filepath.Walk(root, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, name)
		if err != nil {
			return err
		}
		w, err := writer.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		file, err := os.Open(name)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, file)
		_ = file.Close()
		return err
	})
}

func removeQuietly(name string) {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		logger.Debugf("cannot remove %q: %v", name, err)
	}
}
