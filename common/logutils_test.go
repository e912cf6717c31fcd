package common_test

import (
	"bytes"
	"encoding/json"
	"taskboard/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

var _ = Describe("Logging", func() {
	AfterEach(func() {
		common.ConfigureLogging("", "")
	})

	It("should stamp service field on every entry", func() {
		common.ConfigureLogging("debug", "json")
		buf := &bytes.Buffer{}
		logrus.StandardLogger().Out = buf

		logrus.Debug("hello")

		entry := map[string]interface{}{}
		Expect(json.Unmarshal(buf.Bytes(), &entry)).To(BeNil())
		Expect(entry["service"]).To(Equal(common.ServiceName))
		Expect(entry["msg"]).To(Equal("hello"))
		Expect(entry["level"]).To(Equal("debug"))
	})

	It("should fall back to info level on unknown level", func() {
		common.ConfigureLogging("verbose", "")
		Expect(logrus.GetLevel()).To(Equal(logrus.InfoLevel))
	})
})
