package common_test

import (
	"taskboard/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Strings", func() {
	Describe("StringReader", func() {
		It("should be able to build a bytes.Reader from a string", func() {
			str := "test string"
			reader := common.StringReader(str)
			buf := make([]byte, len(str))
			n, err := reader.Read(buf)
			Expect(n).To(Equal(len(str)))
			Expect(err).To(BeNil())
			Expect(string(buf)).To(Equal(str))
		})
	})

	Describe("FullName", func() {
		It("should join names and trim missing parts", func() {
			Expect(common.FullName("Ann", "Lee")).To(Equal("Ann Lee"))
			Expect(common.FullName("Ann", "")).To(Equal("Ann"))
			Expect(common.FullName("", " Lee ")).To(Equal("Lee"))
			Expect(common.FullName("", "")).To(BeEmpty())
		})
	})
})
